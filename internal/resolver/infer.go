package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/bills-tracker/constants"
)

// Inference is a provider identity recovered from the file name or text.
type Inference struct {
	Hint    constants.ProviderHint
	Keyword string
	Source  string // "file_name" | "text"
}

type keywordMatcher struct {
	keyword string
	re      *regexp.Regexp
	hint    constants.ProviderHint
}

// matchers are ordered longest keyword first so "movistar tv" beats "movistar".
var matchers = buildMatchers(constants.ProviderHints)

var reFileSeparators = regexp.MustCompile(`[_\-.]+`)

func buildMatchers(hints []constants.ProviderHint) []keywordMatcher {
	byKeyword := make(map[string]constants.ProviderHint)
	for _, h := range hints {
		for _, kw := range h.Keywords {
			if n := NormalizeSearchValue(kw); n != "" {
				byKeyword[n] = h // later hints win on shared keywords
			}
		}
	}
	out := make([]keywordMatcher, 0, len(byKeyword))
	for kw, h := range byKeyword {
		out = append(out, keywordMatcher{
			keyword: kw,
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
			hint:    h,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].keyword) != len(out[j].keyword) {
			return len(out[i].keyword) > len(out[j].keyword)
		}
		return out[i].keyword < out[j].keyword
	})
	return out
}

type cachedInference struct {
	inf Inference
	ok  bool
}

// Inferrer scans file names and bill text for provider keywords. Results are
// memoized per (fileName, text); create one per parse.
type Inferrer struct {
	memo   *cache.Cache
	logger *slog.Logger
}

func NewInferrer(logger *slog.Logger) *Inferrer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inferrer{memo: cache.New(cache.NoExpiration, 0), logger: logger}
}

// InferProviderFromContent checks the file name first, then the text.
func (i *Inferrer) InferProviderFromContent(fileName, text string) (Inference, bool) {
	key := memoKey(fileName, text)
	if v, found := i.memo.Get(key); found {
		c := v.(cachedInference)
		return c.inf, c.ok
	}

	inf, ok := scan(fileName, text)
	i.memo.Set(key, cachedInference{inf: inf, ok: ok}, cache.NoExpiration)
	if ok {
		i.logger.Debug("resolver.infer.match", "provider_id", inf.Hint.ProviderID, "keyword", inf.Keyword, "source", inf.Source)
	}
	return inf, ok
}

func scan(fileName, text string) (Inference, bool) {
	if fileName != "" {
		name := reFileSeparators.ReplaceAllString(NormalizeSearchValue(fileName), " ")
		if m, ok := firstMatch(name); ok {
			return Inference{Hint: m.hint, Keyword: m.keyword, Source: "file_name"}, true
		}
	}
	if strings.TrimSpace(text) != "" {
		if m, ok := firstMatch(NormalizeSearchValue(text)); ok {
			return Inference{Hint: m.hint, Keyword: m.keyword, Source: "text"}, true
		}
	}
	return Inference{}, false
}

func firstMatch(s string) (keywordMatcher, bool) {
	for _, m := range matchers {
		if m.re.MatchString(s) {
			return m, true
		}
	}
	return keywordMatcher{}, false
}

func memoKey(fileName, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fileName + "\x00" + hex.EncodeToString(sum[:])
}
