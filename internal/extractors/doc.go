// Package extractors turns uploaded files into plain text. Each sub-package
// handles one file type; Registry maps file names to types and dispatches.
//
// Extractors are registered with the Registry at startup.
package extractors
