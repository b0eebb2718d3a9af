// Package compose resolves the active branch profile for a call and turns the
// filtered concept graph into a core.ProcessingResult.
//
// A Selector picks the profile: a known caller override always wins, an
// unknown override is logged and ignored, then the classifier suggestion,
// then the configured default branch, then a built-in conversational profile.
//
// A Composer renders the answer in the profile's style (or its template) and
// always reports the alignment of the configuration it ran under. Fallback
// builds the result returned when any stage fails.
package compose
