package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// Header carries the encoded fingerprint on validation requests.
const Header = "X-MailSentry-Fingerprint"

// Fingerprint is caller-supplied identity and request metadata used as
// a supplementary risk signal. This service consumes fingerprints, it
// never produces them.
type Fingerprint struct {
	BotScore  float64
	IP        string
	ASN       string
	Country   string
	UserAgent string
}

// NewFromID decodes the wire form produced by ID: base64 over
// "botScore|ip|asn|country|userAgent".
func NewFromID(id string) (*Fingerprint, error) {
	decoded, err := base64.StdEncoding.DecodeString(id)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(string(decoded), "|")
	if len(parts) != 5 {
		return nil, errors.New("invalid fingerprint ID format")
	}
	botScore, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, errors.New("invalid fingerprint bot score")
	}
	if botScore < 0 || botScore > 1 {
		return nil, errors.New("fingerprint bot score out of range")
	}
	return &Fingerprint{
		BotScore:  botScore,
		IP:        parts[1],
		ASN:       parts[2],
		Country:   strings.ToUpper(strings.TrimSpace(parts[3])),
		UserAgent: parts[4],
	}, nil
}

func (f Fingerprint) ID() string {
	raw := strconv.FormatFloat(f.BotScore, 'f', -1, 64) +
		"|" + f.IP +
		"|" + f.ASN +
		"|" + f.Country +
		"|" + f.UserAgent
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Hash returns a stable digest of the fingerprint for telemetry, so
// events correlate without carrying the raw identity fields.
func (f Fingerprint) Hash() string {
	sum := sha256.Sum256([]byte(f.ID()))
	return hex.EncodeToString(sum[:])
}
