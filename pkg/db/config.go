package db

// Config carries connection settings for the primary database. Type selects
// the dialector (postgres, mysql, sqlite).
type Config struct {
	Type     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// Pool tuning; the Conn* durations are in seconds.
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}
