package wallet

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/ethereum/go-ethereum/common"
)

// AccountID is a native ledger entity id in shard.realm.num form. Tokens and
// contracts share the format.
type AccountID struct {
	Shard uint64
	Realm uint64
	Num   uint64
}

func (a AccountID) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Shard, a.Realm, a.Num)
}

// EVMAddress returns the long-zero address the EVM uses for the entity.
func (a AccountID) EVMAddress() common.Address {
	addr := common.Address{}
	binary.BigEndian.PutUint32(addr[0:4], uint32(a.Shard))
	binary.BigEndian.PutUint64(addr[4:12], a.Realm)
	binary.BigEndian.PutUint64(addr[12:20], a.Num)
	return addr
}

func ParseAccountID(s string) (AccountID, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return AccountID{}, fmt.Errorf("invalid entity id %q%w", s, model.ErrInvalidParameter)
	}
	nums := [3]uint64{}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return AccountID{}, fmt.Errorf("invalid entity id %q%w", s, model.ErrInvalidParameter)
		}
		nums[i] = n
	}
	return AccountID{Shard: nums[0], Realm: nums[1], Num: nums[2]}, nil
}

// ToEVMAddress accepts either a 0x address or a native entity id.
func ToEVMAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) {
		return common.HexToAddress(s), nil
	}
	id, err := ParseAccountID(s)
	if err != nil {
		return common.Address{}, err
	}
	return id.EVMAddress(), nil
}

// ChecksumAddress validates an EVM address and returns its EIP-55 form.
func ChecksumAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid EVM address %q%w", s, model.ErrInvalidParameter)
	}
	return common.HexToAddress(s).Hex(), nil
}

// ValidateAccount is an ozzo-validation rule for account references.
func ValidateAccount(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if common.IsHexAddress(s) {
		return nil
	}
	if _, err := ParseAccountID(s); err != nil {
		return fmt.Errorf("must be shard.realm.num or a 0x address")
	}
	return nil
}
