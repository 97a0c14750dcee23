// Copyright 2025 The Merb Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"maps"
	"net"
	"net/http"
	"strings"

	"merb.dev/core/router/compiler"
)

// Request is the view of a request that routes are matched against.
//
// Attr returns request attributes by condition key. Requests built by
// FromHTTP understand "protocol", "host", "port", "domain", "subdomains",
// "remote_ip" and "query"; any other key is looked up as a header, with
// underscores standing for dashes ("user_agent" reads User-Agent).
type Request = compiler.Request

// Params holds the values produced by a match.
type Params = compiler.Params

type valueRequest struct {
	method string
	path   string
	attrs  map[string]string
}

// NewRequest returns a Request with fixed values. It is used by tests,
// tools and dispatchers that are not built on net/http.
//
// Example:
//
//	req := router.NewRequest("GET", "/users/5", map[string]string{"host": "example.com"})
//	m, err := r.Match(req)
func NewRequest(method, path string, attrs map[string]string) Request {
	return &valueRequest{method: method, path: path, attrs: maps.Clone(attrs)}
}

func (r *valueRequest) Path() string   { return r.path }
func (r *valueRequest) Method() string { return r.method }

func (r *valueRequest) Attr(key string) (string, bool) {
	v, ok := r.attrs[key]
	return v, ok
}

type httpRequest struct {
	req *http.Request
}

// FromHTTP adapts an *http.Request. Attributes are computed on demand.
//
// Example:
//
//	func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
//	    m, err := d.router.MatchContext(req.Context(), router.FromHTTP(req))
//	    ...
//	}
func FromHTTP(req *http.Request) Request {
	return httpRequest{req: req}
}

func (r httpRequest) Path() string {
	if r.req.URL == nil {
		return "/"
	}
	return r.req.URL.Path
}

func (r httpRequest) Method() string {
	if r.req.Method == "" {
		return http.MethodGet
	}
	return r.req.Method
}

func (r httpRequest) Attr(key string) (string, bool) {
	switch key {
	case "protocol":
		return r.protocol(), true
	case "host":
		host, _ := splitHost(r.rawHost())
		return host, host != ""
	case "port":
		_, port := splitHost(r.rawHost())
		return port, port != ""
	case "domain":
		host, _ := splitHost(r.rawHost())
		domain, _ := splitDomain(host)
		return domain, domain != ""
	case "subdomains":
		host, _ := splitHost(r.rawHost())
		_, sub := splitDomain(host)
		return sub, true
	case "remote_ip":
		ip := r.remoteIP()
		return ip, ip != ""
	case "query":
		if r.req.URL == nil {
			return "", true
		}
		return r.req.URL.RawQuery, true
	}

	name := http.CanonicalHeaderKey(strings.ReplaceAll(key, "_", "-"))
	values, ok := r.req.Header[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (r httpRequest) rawHost() string {
	if r.req.Host != "" {
		return r.req.Host
	}
	if r.req.URL != nil {
		return r.req.URL.Host
	}
	return ""
}

// protocol returns "https" for TLS requests and requests forwarded from
// TLS by a proxy, "http" otherwise.
func (r httpRequest) protocol() string {
	if r.req.TLS != nil {
		return "https"
	}
	if proto := r.req.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if r.req.Header.Get("X-Forwarded-Ssl") == "on" {
		return "https"
	}
	return "http"
}

// remoteIP returns the first X-Forwarded-For address, X-Real-Ip, or the
// host part of RemoteAddr.
func (r httpRequest) remoteIP() string {
	if xff := r.req.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.req.Header.Get("X-Real-Ip")); net.ParseIP(ip) != nil {
		return ip
	}
	host, _, err := net.SplitHostPort(r.req.RemoteAddr)
	if err != nil {
		return r.req.RemoteAddr
	}
	return host
}

// splitHost separates "example.com:8080" into host and port. IPv6
// literals keep their brackets stripped.
func splitHost(hostport string) (string, string) {
	if hostport == "" {
		return "", ""
	}
	if host, port, err := net.SplitHostPort(hostport); err == nil {
		return host, port
	}
	return strings.Trim(hostport, "[]"), ""
}

// splitDomain returns the registered domain (the last two labels) and the
// subdomain labels in front of it. IP addresses have no subdomains.
func splitDomain(host string) (string, string) {
	if host == "" || net.ParseIP(host) != nil {
		return host, ""
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host, ""
	}
	n := len(labels) - 2
	return strings.Join(labels[n:], "."), strings.Join(labels[:n], ".")
}
