// Package model defines the provider-agnostic abstractions for text
// generation used by model-backed scoring.
//
// Core goals:
//   - Unify streaming and non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (see the openai and anthropic subpackages) implement Model so
// the scorer package stays decoupled from vendor SDKs.
package model
