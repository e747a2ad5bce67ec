package jsonrpcservice

import (
	"fmt"
	"net"
	"time"
)

const defaultMaxRequestExpiry = 10 * time.Minute

type Config struct {
	Port uint32
	// MaxRequestExpiry bounds how far in the future a signed request can expire.
	MaxRequestExpiry time.Duration
}

func (c Config) Validate() error {
	lis, err := net.Listen("tcp", c.address())
	if err != nil {
		return fmt.Errorf("invalid port: %s", err)
	}
	// nolint:all
	lis.Close()

	if c.MaxRequestExpiry < 0 {
		return fmt.Errorf("max request expiry must not be negative")
	}
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) maxRequestExpiry() time.Duration {
	if c.MaxRequestExpiry == 0 {
		return defaultMaxRequestExpiry
	}
	return c.MaxRequestExpiry
}
