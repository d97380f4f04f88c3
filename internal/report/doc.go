// Package report ranks knockdown scenarios by their effect on the phenotype
// and renders the result as CSV, terminal tables, terminal plots or a PNG
// bar chart.
package report
