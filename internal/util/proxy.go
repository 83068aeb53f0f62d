package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
// noProxy is a comma-separated list of hosts (or ".suffix" domains) that bypass the proxy.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := parseNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if bypassProxy(req.URL.Hostname(), bypass) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func parseNoProxy(noProxy string) []string {
	var hosts []string
	for _, h := range strings.Split(noProxy, ",") {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func bypassProxy(host string, bypass []string) bool {
	host = strings.ToLower(host)
	for _, b := range bypass {
		if b == "*" || host == b {
			return true
		}
		if strings.HasPrefix(b, ".") && strings.HasSuffix(host, b) {
			return true
		}
	}
	return false
}
