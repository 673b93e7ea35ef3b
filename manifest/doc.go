// Package manifest loads port tables from YAML files for the decodergen CLI.
package manifest
