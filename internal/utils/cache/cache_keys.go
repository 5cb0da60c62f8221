package cache

import "fmt"

type EntityType string

const (
	EntityWallet EntityType = "wallet"
)

type KeyType string

const (
	KeyHospital KeyType = "hospital"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}
