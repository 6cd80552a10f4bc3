// Package parser classifies storefront URLs and pulls product data and
// follow-up links out of HTML pages using heuristic selector cascades.
package parser
