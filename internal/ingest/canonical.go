package ingest

import (
	"net/url"
	"sort"
	"strings"

	"github.com/akolanti/readstash/internal/domain/docModel"
)

// trackingParams are stripped from query strings before the uniqueness
// check so the same article shared through different channels dedupes.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"igshid":       true,
	"mc_cid":       true,
	"mc_eid":       true,
	"ref":          true,
}

// CanonicalizeURL normalizes a URL into the form used as the dedup key:
// lower-cased scheme and host, tracking parameters removed, fragment and
// trailing slash dropped.
func CanonicalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &docModel.ValidationError{Field: "url", Reason: "must not be empty"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &docModel.ValidationError{Field: "url", Reason: "not a valid URL"}
	}
	if u.Scheme == "" || (u.Host == "" && u.Scheme != "upload") {
		return "", &docModel.ValidationError{Field: "url", Reason: "must be absolute"}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for param := range q {
		if trackingParams[strings.ToLower(param)] {
			q.Del(param)
		}
	}
	u.RawQuery = encodeSorted(q)

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String(), nil
}

// encodeSorted gives a deterministic query ordering so parameter order
// differences cannot defeat the unique constraint.
func encodeSorted(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		for _, v := range q[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	return sb.String()
}

// NormalizeTags trims, lower-cases, splits embedded commas, and dedupes.
// Order of the result is not significant.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range tags {
		for _, part := range strings.Split(raw, ",") {
			tag := strings.ToLower(strings.TrimSpace(part))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}
