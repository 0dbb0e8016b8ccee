// Package hcl provides the concrete HCL implementation of the declaration
// source and data conversion interfaces defined in the `config` package.
// It is responsible for file parsing, HCL-to-model translation, and
// cty-to-Go data binding.
package hcl
