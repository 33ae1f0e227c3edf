// Package templating drives a full render from files. The Engine loads
// stamp files, data files in any adapter syntax and NAME=VALUE variables
// into one record, parses the template in the configured tag dialect,
// renders it and writes the result, optionally transcoding input and
// output and keeping a digest sidecar next to the output file.
//
// Layers are merged in this order, later ones winning: stamps, data
// files in the order given, variables.
package templating
