package sshkey

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Resolve turns a user-supplied key reference into literal authorized_keys
// material accepted by `yc compute instance create --ssh-key`. The reference
// is either a path to a public key file or the literal key itself, optionally
// prefixed with a login ("user:ssh-ed25519 ..."). An empty reference resolves
// to an empty string: no key injection.
func Resolve(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}

	material := ref
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		data, err := os.ReadFile(ref)
		if err != nil {
			return "", fmt.Errorf("failed to read ssh key file %q: %w", ref, err)
		}
		material = strings.TrimSpace(string(data))
	}

	if err := validate(material); err != nil {
		return "", err
	}
	return material, nil
}

// validate parses the key material, tolerating the yc "login:" prefix.
func validate(material string) error {
	keyPart := material
	if idx := strings.IndexByte(material, ':'); idx > 0 && !strings.Contains(material[:idx], " ") {
		keyPart = material[idx+1:]
	}
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(keyPart)); err != nil {
		return fmt.Errorf("invalid ssh public key: %w", err)
	}
	return nil
}
