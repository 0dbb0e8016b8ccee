// Package exprs analyzes the HCL expressions that make up raw property and
// parameter values.
//
// A raw value that calls functions is "parseable": each called function
// name is resolved as a parser through the plugin resolution chain before
// the expression is evaluated. Raw values never see variables, so a value
// referencing one is rejected when its unit is read.
package exprs
