// Package install maps manifest files to installer commands and dispatches
// them in batches.
//
// A Dispatcher receives a stream of file entries, forwards every entry
// unchanged, and collects an install command for each manifest whose basename
// matches the rule table. When the stream ends the batch is either reported as
// a copy-pasteable shell chain (skip mode) or executed with at most the
// configured number of installers running at once. The first failure decides
// the batch result; commands already running are not interrupted.
package install
