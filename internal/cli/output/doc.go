// Package output formats rehashkv-cli results.
//
// Formats are table (default), json and yaml. Tables render structs and
// maps as FIELD/VALUE rows in a stable order so scripts can grep them.
package output
