package corebank

type Config struct {
	Database struct {
		ConnectionString string `yaml:"conn_str"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Accounts struct {
		// NumberPrefix is the fixed two-digit prefix of generated account
		// numbers.
		NumberPrefix int64 `yaml:"number_prefix"`
	} `yaml:"accounts"`
	Idempotency struct {
		// TTL is a time.ParseDuration string, e.g. "6h".
		TTL string `yaml:"ttl"`
	} `yaml:"idempotency"`
}
