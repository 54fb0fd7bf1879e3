// Package correlation pulls an IP address and user name out of an alert and
// collects the log lines that mention either.
package correlation

import (
	"regexp"
	"strings"

	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

// Paths into Windows event data where Wazuh places the source address and
// the account name.
var (
	IPAddressPath      = []string{"data", "win", "eventdata", "IpAddress"}
	TargetUserNamePath = []string{"data", "win", "eventdata", "TargetUserName"}
)

// ipv4Pattern is a loose dotted-quad match. Octets are not range checked.
var ipv4Pattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// Extractor pulls one candidate value from an alert.
type Extractor interface {
	Name() string
	Extract(doc models.Document) (string, bool)
}

type fieldExtractor struct {
	path []string
}

// FieldExtractor reads a non-empty string at a nested path.
func FieldExtractor(path ...string) Extractor {
	return fieldExtractor{path: path}
}

func (f fieldExtractor) Name() string {
	return "field:" + strings.Join(f.path, ".")
}

func (f fieldExtractor) Extract(doc models.Document) (string, bool) {
	return doc.Alert.LookupString(f.path...)
}

type patternExtractor struct {
	name string
	re   *regexp.Regexp
}

// PatternExtractor returns the first match of re in the alert's JSON text,
// scanned in the order the alert was received.
func PatternExtractor(name string, re *regexp.Regexp) Extractor {
	return patternExtractor{name: name, re: re}
}

func (p patternExtractor) Name() string {
	return "pattern:" + p.name
}

func (p patternExtractor) Extract(doc models.Document) (string, bool) {
	m := p.re.FindString(doc.JSON())
	return m, m != ""
}

// Chain is an ordered list of extractors; the first hit wins.
type Chain []Extractor

// Extract runs the chain and names the extractor that produced the value.
func (c Chain) Extract(doc models.Document) (value, source string) {
	for _, e := range c {
		if v, ok := e.Extract(doc); ok {
			return v, e.Name()
		}
	}
	return "", ""
}

// DefaultIPChain tries the structured field, then scans for an IPv4 literal.
func DefaultIPChain() Chain {
	return Chain{
		FieldExtractor(IPAddressPath...),
		PatternExtractor("ipv4", ipv4Pattern),
	}
}

// DefaultUserChain only reads the structured field.
func DefaultUserChain() Chain {
	return Chain{FieldExtractor(TargetUserNamePath...)}
}

// Extraction is the result of running both chains on one alert.
type Extraction struct {
	IP         string
	IPSource   string
	User       string
	UserSource string
}

// Keys returns the non-empty search tokens, IP first.
func (e Extraction) Keys() []string {
	keys := make([]string, 0, 2)
	if e.IP != "" {
		keys = append(keys, e.IP)
	}
	if e.User != "" && e.User != e.IP {
		keys = append(keys, e.User)
	}
	return keys
}

// Extract runs the default chains.
func Extract(doc models.Document) Extraction {
	return extractWith(DefaultIPChain(), DefaultUserChain(), doc)
}

func extractWith(ipChain, userChain Chain, doc models.Document) Extraction {
	var ex Extraction
	ex.IP, ex.IPSource = ipChain.Extract(doc)
	ex.User, ex.UserSource = userChain.Extract(doc)
	return ex
}
