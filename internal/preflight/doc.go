// Package preflight provides readiness checks for the external tools and
// filesystem paths mkvsubs depends on.
//
// The CLI "mkvsubs check" command runs RunAll and CheckSystemDeps and prints
// one line per check. Search roots only need read access; the output and log
// directories must also be writable.
package preflight
