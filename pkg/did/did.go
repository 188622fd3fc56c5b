// Package did parses decentralized identifiers used to name certificate issuers.
package did

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

var ErrInvalidDID = errors.New("invalid DID")

const MethodHedera = "hedera"

type DID struct {
	method string
	id     string
}

var didRegexp = regexp.MustCompile(`^did:([a-z0-9]+):((?:[A-Za-z0-9._%-]*:)*[A-Za-z0-9._%-]+)$`)
var accountRegexp = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func (d DID) String() string {
	if d.IsEmpty() {
		return ""
	}
	return "did:" + d.method + ":" + d.id
}

func (d DID) Method() string { return d.method }
func (d DID) ID() string     { return d.id }

func (d DID) IsEmpty() bool {
	return d.method == "" && d.id == ""
}

func NewDID(method, id string) DID {
	return DID{
		method: method,
		id:     id,
	}
}

// NewHederaDID names an issuer by the ledger account it mints from,
// e.g. did:hedera:testnet:0.0.1234.
func NewHederaDID(network, accountID string) (DID, error) {
	if network == "" || !accountRegexp.MatchString(accountID) {
		return DID{}, ErrInvalidDID
	}
	return NewDID(MethodHedera, network+":"+accountID), nil
}

// Account returns the ledger account of a did:hedera identifier.
func (d DID) Account() (network, accountID string, err error) {
	if d.method != MethodHedera {
		return "", "", ErrInvalidDID
	}
	parts := strings.Split(d.id, ":")
	if len(parts) != 2 || !accountRegexp.MatchString(parts[1]) {
		return "", "", ErrInvalidDID
	}
	return parts[0], parts[1], nil
}

func Parse(str string) (DID, error) {
	matches := didRegexp.FindStringSubmatch(str)
	if len(matches) != 3 {
		return DID{}, ErrInvalidDID
	}

	return DID{
		method: matches[1],
		id:     matches[2],
	}, nil
}

func MustParse(did string) DID {
	r, err := Parse(did)
	if err != nil {
		panic(err)
	}
	return r
}

// ValidateDID is an ozzo-validation rule accepting strings that parse as a DID.
func ValidateDID(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := Parse(s); err != nil {
		return err
	}
	return nil
}

func (d DID) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*d = DID{}
		return nil
	}
	parsedDID, err := Parse(str)
	if err != nil {
		return err
	}
	*d = parsedDID
	return nil
}
