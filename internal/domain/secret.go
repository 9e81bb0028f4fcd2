package domain

// SecretType categorizes credentials by their intended use
type SecretType string

const (
	SecretTypeSSHKey      SecretType = "ssh_key"
	SecretTypeSSHPassword SecretType = "ssh_password"
)

// Secret holds credentials used to reach a remote container engine.
// Data keys: username, private_key, passphrase, password.
type Secret struct {
	ID   string            `json:"id"`
	Type SecretType        `json:"type"`
	Data map[string]string `json:"-"`
}

// NewSSHKeySecret creates a key-based SSH secret
func NewSSHKeySecret(id, username, privateKey, passphrase string) *Secret {
	data := map[string]string{
		"username":    username,
		"private_key": privateKey,
	}
	if passphrase != "" {
		data["passphrase"] = passphrase
	}
	return &Secret{ID: id, Type: SecretTypeSSHKey, Data: data}
}

// NewSSHPasswordSecret creates a password-based SSH secret
func NewSSHPasswordSecret(id, username, password string) *Secret {
	return &Secret{
		ID:   id,
		Type: SecretTypeSSHPassword,
		Data: map[string]string{
			"username": username,
			"password": password,
		},
	}
}

// Redacted returns a copy with all secret values masked
func (s *Secret) Redacted() *Secret {
	masked := make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		if k == "username" {
			masked[k] = v
			continue
		}
		masked[k] = "********"
	}
	return &Secret{ID: s.ID, Type: s.Type, Data: masked}
}
