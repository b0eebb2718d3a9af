// Package scorer provides core.Scorer implementations.
//
//   - Table returns fixed candidates from a lookup table and is meant for tests.
//   - Proximity scores concepts by their distance in the input and their
//     character bigram similarity. It is the engine default.
//   - Model asks a language model for related concepts.
//   - Caching wraps any scorer, deduplicating concurrent identical requests
//     and caching their results.
package scorer
