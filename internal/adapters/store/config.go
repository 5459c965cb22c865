package store

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config describes where the reading log lives.
type Config struct {
	Driver   string `yaml:"driver" validate:"oneof=mysql postgres sqlite"`
	Host     string `yaml:"host" validate:"required_unless=Driver sqlite"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required_unless=Driver sqlite"`
	Charset  string `yaml:"charset"`
	SSLMode  string `yaml:"ssl_mode"`
	Table    string `yaml:"table" validate:"required"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path" validate:"required_if=Driver sqlite"`

	DialTimeout    time.Duration `yaml:"dial_timeout"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" validate:"gt=0"`
}

func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMySQL
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		switch c.Driver {
		case DriverMySQL:
			c.Port = 3306
		case DriverPostgres:
			c.Port = 5432
		}
	}
	if c.Charset == "" {
		c.Charset = "utf8mb4"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Table == "" {
		c.Table = "water_log"
	}
	if c.Path == "" {
		c.Path = "./data/floodbarrier.db"
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 5 * time.Second
	}
}

func (c *Config) Validate() error {
	if _, err := dialectFor(c.Driver); err != nil {
		return err
	}
	if !identRe.MatchString(c.Table) {
		return fmt.Errorf("table %q is not a valid identifier", c.Table)
	}
	if c.Driver == DriverMySQL && !identRe.MatchString(c.Charset) {
		return fmt.Errorf("charset %q is not a valid identifier", c.Charset)
	}
	if c.Driver != DriverSQLite && c.Name == "" {
		return errors.New("name is required")
	}
	if c.ReconnectDelay <= 0 {
		return errors.New("reconnect_delay must be > 0")
	}
	return nil
}

// Addr is host:port for network drivers and the file path for sqlite.
func (c *Config) Addr() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		q := url.Values{}
		q.Set("sslmode", c.SSLMode)
		q.Set("client_encoding", pgEncoding(c.Charset))
		q.Set("connect_timeout", strconv.Itoa(int(c.DialTimeout.Seconds())))
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Addr(),
			Path:     "/" + c.Name,
			RawQuery: q.Encode(),
		}
		return u.String()
	case DriverSQLite:
		return c.Path + "?_pragma=busy_timeout(5000)"
	default:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = c.Addr()
		mc.DBName = c.Name
		mc.ParseTime = true
		mc.Timeout = c.DialTimeout
		mc.Params = map[string]string{"charset": c.Charset}
		return mc.FormatDSN()
	}
}

func pgEncoding(charset string) string {
	if strings.HasPrefix(strings.ToLower(charset), "utf8") {
		return "UTF8"
	}
	return charset
}
