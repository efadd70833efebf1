// Revcov reviews a code tree with an OpenAI-compatible LLM endpoint and
// tracks review coverage in a crash-safe append-only ledger.
//
// Every file is split into deterministic, content-addressed segments;
// each successful review is recorded so interrupted runs resume where
// they left off and CI can gate on full coverage.
//
// Usage:
//
//	revcov review [dir]            # review uncovered segments
//	revcov report [dir] --check    # rebuild the report, fail on gaps
//	revcov config init             # write a default config file
//
// See https://github.com/rburns/revcov for full documentation.
package main
