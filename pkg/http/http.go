package http

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

/**
 * @file: http.go
 * @description: http server settings
 */

type Http struct {
	Host                string `mapstructure:"host"`
	Port                int    `mapstructure:"port"`
	InternalContextPath string `mapstructure:"internalContextPath"`
	ExposeMetrics       bool   `mapstructure:"exposeMetrics"`
	AccessLog           bool   `mapstructure:"accessLog"`
	// CorsOrigins is a comma-separated allow list, "*" for any.
	CorsOrigins string `mapstructure:"corsOrigins"`
	// BodyLimit in bytes
	BodyLimit       int  `mapstructure:"bodyLimit"`
	ReadTimeout     int  `mapstructure:"readTimeout"`
	WriteTimeout    int  `mapstructure:"writeTimeout"`
	IdleTimeout     int  `mapstructure:"idleTimeout"`
	ShutdownTimeout int  `mapstructure:"shutdownTimeout"`
	TLS             TLS  `mapstructure:"tls"`
	Auth            Auth `mapstructure:"auth"`
}

type TLS struct {
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

type Auth struct {
	SecretKey string `mapstructure:"secretKey"`
	// AccessExpire and RefreshExpire are in minutes.
	AccessExpire  int `mapstructure:"accessExpire"`
	RefreshExpire int `mapstructure:"refreshExpire"`
}

func (a Auth) AccessTTL() time.Duration {
	return time.Duration(a.AccessExpire) * time.Minute
}

func (a Auth) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshExpire) * time.Minute
}

func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.InternalContextPath == "" {
		h.InternalContextPath = "/api"
	}
	if h.BodyLimit == 0 {
		h.BodyLimit = 1 << 20
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = 30
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = 30
	}
	if h.IdleTimeout == 0 {
		h.IdleTimeout = 120
	}
	if h.ShutdownTimeout == 0 {
		h.ShutdownTimeout = 30
	}
	if h.Auth.AccessExpire == 0 {
		h.Auth.AccessExpire = 60
	}
	if h.Auth.RefreshExpire == 0 {
		h.Auth.RefreshExpire = 7 * 24 * 60
	}
}

func (h *Http) Validate() error {
	if h.Port <= 0 || h.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", h.Port)
	}
	if len(h.Auth.SecretKey) < 16 {
		return fmt.Errorf("http.auth.secretKey must be at least 16 characters")
	}
	if h.Auth.AccessExpire < 0 || h.Auth.RefreshExpire < 0 {
		return fmt.Errorf("http.auth expiry must not be negative")
	}
	if (h.TLS.CertFile == "") != (h.TLS.KeyFile == "") {
		return fmt.Errorf("http.tls needs both certFile and keyFile")
	}
	return nil
}

func (h *Http) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// FiberConfig builds the fiber app settings. errorHandler renders errors that
// escape the handlers.
func (h *Http) FiberConfig(appName string, errorHandler fiber.ErrorHandler) fiber.Config {
	return fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		BodyLimit:             h.BodyLimit,
		ReadTimeout:           time.Duration(h.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(h.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(h.IdleTimeout) * time.Second,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          errorHandler,
	}
}
