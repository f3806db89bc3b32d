// Package mediapath resolves bare media filenames against the configured,
// ordered search roots.
//
// Resolution runs in two passes: a direct check of root/filename for every
// root, then a bounded-depth scan beneath each root visiting entries in
// lexical order. The first match wins. Unreadable or missing directories are
// skipped and never abort resolution.
package mediapath
