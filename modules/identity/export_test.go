package identity

// WithCompare replaces the bcrypt comparison so tests can observe it.
func WithCompare(fn func(hash, password []byte) error) Option {
	return func(s *Service) { s.compare = fn }
}
