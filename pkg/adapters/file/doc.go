// Package file loads configuration files into a memory store and writes
// normalized configurations back.
//
// Supported formats, chosen by extension: INI (.ini, .cfg, .conf), YAML
// (.yml, .yaml), TOML (.toml), JSON (.json) and HCL (.hcl). Every format
// holds one level of sections, each a flat set of items. In INI files a
// value holding a comma is a sequence: "tags = a, b" reads as ["a", "b"].
package file
