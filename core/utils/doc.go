// Package utils provides small conversion helpers shared by the import
// pipeline and the HTTP handlers: lenient number parsing for spreadsheet
// cells and truthiness for query flags.
package utils
