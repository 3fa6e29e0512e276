// Package main hosts the pronounce CLI.
//
// Commands score saved provider transcripts (evaluate), run a recording
// through the provider and score it (assess), and manage the reference
// catalog, transcript cache, and configuration file. Configuration and the
// logger are resolved lazily so that commands like 'config init' work before
// any configuration exists.
package main
