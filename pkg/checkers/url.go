package checkers

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

type urlCaster struct{}

func (urlCaster) cast(raw any) (any, *Issue) {
	s, ok := raw.(string)
	if !ok {
		return nil, issuef(KindParse, "%v is not a valid url", raw)
	}
	s = strings.TrimSpace(s)

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return nil, issuef(KindParse, "%s is not a valid url, expected scheme://host", show(s))
	}

	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return s, nil
	}
	if _, err := idna.Lookup.ToASCII(host); err != nil {
		return nil, issuef(KindParse, "%s is not a valid url, host %q is not a valid DNS name", show(s), host)
	}
	return s, nil
}

func (urlCaster) empty() (any, *Issue) {
	return nil, issuef(KindMissing, "a url value is required")
}
