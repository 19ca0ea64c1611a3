// Package batch runs many sentences through the intent parser and reads
// sentence lists from text, CSV and XLSX files.
package batch

import (
	"encoding/json"

	"github.com/FACorreiaa/gift-ledger/internal/domain/intent"
)

// Result is the outcome for one input sentence. Exactly one of Intent and
// Err is set.
type Result struct {
	Input  string
	Intent *intent.ParsedIntent
	Err    error
}

type resultJSON struct {
	Input  string               `json:"input"`
	Intent *intent.ParsedIntent `json:"intent,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Input: r.Input, Intent: r.Intent}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// OK reports whether the sentence parsed.
func (r Result) OK() bool { return r.Err == nil && r.Intent != nil }

// Run parses every sentence with p, keeping input order.
func Run(p *intent.Parser, sentences []string) []Result {
	results := make([]Result, 0, len(sentences))
	for _, s := range sentences {
		parsed, err := p.Parse(s)
		results = append(results, Result{Input: s, Intent: parsed, Err: err})
	}
	return results
}

// Summary counts a batch outcome.
type Summary struct {
	Total  int
	Parsed int
	Failed int
}

// Summarize counts results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK() {
			s.Parsed++
		} else {
			s.Failed++
		}
	}
	return s
}

// Parsed returns the intents of the successful results.
func Parsed(results []Result) []*intent.ParsedIntent {
	out := make([]*intent.ParsedIntent, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Intent)
		}
	}
	return out
}

// Samples are the demo sentences used when no input file is given.
func Samples() []string {
	return []string{
		"刚给同事张伟随礼800结婚红包",
		"收到李娜回礼1200",
		"上周六给王哥孩子满月随份子两千五",
		"国庆给表弟礼金3k 微信转账",
		"昨天参加老李乔迁，随礼一千二",
		"中秋收阿姨回礼500红包",
	}
}
