package http

import (
	"github.com/google/wire"
)

// ProviderSet 提供 HTTP 相关的依赖
var ProviderSet = wire.NewSet(ProvideAuth)

// ProvideAuth exposes the token settings to the services.
func ProvideAuth(cfg *Http) *Auth {
	return &cfg.Auth
}
