package settings

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
)

// AdminConfig содержимое admin.toml. Хеш на диск не пишется и с диска не читается,
// он всегда вычисляется из пароля.
type AdminConfig struct {
	Credentials Credentials `json:"credentials"`
}

// Credentials пароль и его хеш. Поля закрыты, чтобы хеш нельзя было выставить
// отдельно от пароля: hash == Digest(password) всегда.
type Credentials struct {
	password string
	hash     string
}

func NewCredentials(password string) Credentials {
	return Credentials{password: password, hash: Digest(password)}
}

func (c Credentials) Password() string { return c.password }

func (c Credentials) Hash() string { return c.hash }

func (c *Credentials) SetPassword(password string) {
	c.password = password
	c.hash = Digest(password)
}

func (c Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Password string `json:"password"`
		Hash     string `json:"hash"`
	}{
		Password: c.password,
		Hash:     c.hash,
	})
}

// CheckAdminHash сравнение за постоянное время.
func (a AdminConfig) CheckAdminHash(hash string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(a.Credentials.hash)) == 1
}

// Digest hex sha256, тот же, что клиент считает на своей стороне.
func Digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
