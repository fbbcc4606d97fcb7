package model

import "errors"

var ErrUnknownSetting = errors.New("unknown setting")

const (
	SettingBankAccount   = "bank_account"
	SettingBankName      = "bank_name"
	SettingAccountHolder = "account_holder"
	SettingStoreAddress  = "store_address"
	SettingStorePhone    = "store_phone"
)

type Setting struct {
	Key         string
	Value       string
	Description string
}

// DefaultSettings are the keys a fresh store starts with, all empty.
func DefaultSettings() []Setting {
	return []Setting{
		{Key: SettingBankAccount, Description: "receiving bank account"},
		{Key: SettingBankName, Description: "receiving bank name"},
		{Key: SettingAccountHolder, Description: "account holder"},
		{Key: SettingStoreAddress, Description: "store address"},
		{Key: SettingStorePhone, Description: "store phone"},
	}
}

func IsKnownSetting(key string) bool {
	for _, s := range DefaultSettings() {
		if s.Key == key {
			return true
		}
	}
	return false
}

type SettingRepository interface {
	List() ([]Setting, error)
	// Store inserts or overwrites the value of key.
	Store(key, value string) error
}
