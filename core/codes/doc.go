// Package codes derives human-readable asset codes from the current collection.
package codes
