package config

import (
	"net"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSNValue returns the explicit DSN or builds one from the discrete fields.
func (c DatabaseConfig) DSNValue() string {
	if c.DSN != "" {
		return c.DSN
	}

	m := mysql.NewConfig()
	m.User = c.User
	m.Passwd = c.Password
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	m.DBName = c.Name
	m.ParseTime = c.ParseTime
	if loc, err := time.LoadLocation(c.Loc); err == nil {
		m.Loc = loc
	}
	m.Params = map[string]string{"charset": c.Charset}
	for k, v := range c.Params {
		if k = strings.TrimSpace(k); k != "" {
			m.Params[k] = strings.TrimSpace(v)
		}
	}
	return m.FormatDSN()
}

// URLValue returns a redis:// URL, or "" when redis is disabled.
func (c RedisConfig) URLValue() string {
	if !c.Enabled() {
		return ""
	}
	if c.URL != "" {
		if strings.Contains(c.URL, "://") {
			return c.URL
		}
		return "redis://" + c.URL
	}

	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}
	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	switch {
	case c.Username != "":
		if c.Password != "" {
			u.User = neturl.UserPassword(c.Username, c.Password)
		} else {
			u.User = neturl.User(c.Username)
		}
	case c.Password != "":
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}
