package domain

// CredentialGuard captures, once at adapter construction, whether all required
// credentials are present. Every adapter shares this check instead of
// repeating its own not-configured branch; the result is immutable for the
// adapter's lifetime.
type CredentialGuard struct {
	missing []string
}

// RequireCredentials checks the given name->value set and records which
// required values are absent.
func RequireCredentials(required map[string]string) CredentialGuard {
	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	return CredentialGuard{missing: missing}
}

// Configured is true iff no required credential was missing at construction.
func (g CredentialGuard) Configured() bool {
	return len(g.missing) == 0
}

// Missing returns the names of absent credentials, in no particular order.
func (g CredentialGuard) Missing() []string {
	return g.missing
}
