package fps

// Config is a configuration for the flow processing service.
type Config struct {
	HTTPAddr string
	// MaxSplitRounds bounds how many partial transactions one payment may
	// spawn before the flow is failed outright.
	MaxSplitRounds int
	// MaxDeclinedRounds bounds how many declined rounds are tolerated before
	// the remainder of the flow is abandoned.
	MaxDeclinedRounds int
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:          getenv("FPS_HTTP_ADDR", "localhost:9080"),
		MaxSplitRounds:    10,
		MaxDeclinedRounds: 3,
	}
}
