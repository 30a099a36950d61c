// Package template defines the engine seam the HTML renderer renders
// component templates through.
package template
