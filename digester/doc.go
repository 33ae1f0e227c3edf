// Package digester keeps SHA256 digests of rendered files in companion
// .digest files, so a render whose output did not change can skip
// rewriting the target.
package digester
