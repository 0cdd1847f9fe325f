package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// capCtxKey is the context key a CapabilityMiddleware reads its checker and
// invoking plugin id from.
type capCtxKey struct{}

type capCtxValue struct {
	checker  *CapabilityChecker
	pluginID string
}

// WithCapabilityContext attaches the capability checker and invoking plugin
// id a guest's host function calls must be checked against. A backend
// constructs one CapabilityChecker per invocation, scoped to that plugin's
// manifest-granted permissions.
func WithCapabilityContext(ctx context.Context, checker *CapabilityChecker, pluginID string) context.Context {
	return context.WithValue(ctx, capCtxKey{}, capCtxValue{checker: checker, pluginID: pluginID})
}

// CapabilityMiddleware gates the network and exec bundles' host functions on
// the invoking plugin's granted capabilities, denying any call that isn't
// covered before it reaches the real network/exec handler.
func CapabilityMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			funcName := "unknown"
			if hc, ok := ctx.(HostContext); ok {
				funcName = hc.FunctionName()
			}

			kind, pattern, gated := capabilityPattern(funcName, payload)
			if gated {
				v, _ := ctx.Value(capCtxKey{}).(capCtxValue)
				if v.checker == nil {
					return NewCapabilityDeniedError(fmt.Sprintf("no capability context for %s", funcName)).ToJSON(), nil
				}
				if err := v.checker.Check(v.pluginID, kind, pattern); err != nil {
					return NewCapabilityDeniedError(err.Error()).ToJSON(), nil
				}
			}

			return next(ctx, payload)
		}
	}
}

// capabilityPattern derives the (kind, pattern) CapabilityChecker.Check
// expects from a host function's request payload. gated is false for host
// functions that carry no capability of their own (e.g. log_message).
func capabilityPattern(funcName string, payload []byte) (kind, pattern string, gated bool) {
	switch funcName {
	case "dns_lookup":
		var req struct {
			Hostname string `json:"hostname"`
		}
		_ = json.Unmarshal(payload, &req)
		return "network", "outbound:" + req.Hostname, true

	case "tcp_connect":
		var req struct {
			Host string `json:"host"`
			Port int    `json:"port"`
		}
		_ = json.Unmarshal(payload, &req)
		return "network", fmt.Sprintf("outbound:%s", hostOrPort(req.Host, req.Port)), true

	case "smtp_connect":
		var req struct {
			Host string `json:"host"`
			Port int    `json:"port"`
		}
		_ = json.Unmarshal(payload, &req)
		return "network", fmt.Sprintf("outbound:%s", hostOrPort(req.Host, req.Port)), true

	case "http_request":
		var req struct {
			URL string `json:"url"`
		}
		_ = json.Unmarshal(payload, &req)
		return "network", "outbound:" + hostFromURL(req.URL), true

	case "exec_command":
		var req struct {
			Command string `json:"command"`
		}
		_ = json.Unmarshal(payload, &req)
		return "exec", req.Command, true

	default:
		return "", "", false
	}
}

func hostOrPort(host string, port int) string {
	if host != "" {
		return host
	}
	return fmt.Sprintf("%d", port)
}

func hostFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Hostname()
}
