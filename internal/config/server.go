package config

type ServerConfig struct {
	Addr string `yaml:"listen-addr"`
	Mem  bool   `yaml:"in-memory"`
}

func (s *ServerConfig) ListenAddr() string {
	if s.Addr == "" {
		return ":8080"
	}
	return s.Addr
}

// InMemory selects the in-memory store instead of Postgres; meant for
// local runs.
func (s *ServerConfig) InMemory() bool {
	return s.Mem
}
