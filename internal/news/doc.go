// Package news finds recent news articles about artists.
//
// An [Aggregator] fans a list of artists out to a [Source], one search per artist, and concatenates the
// results in the order the artists were given. A failing artist is logged and skipped; the others still count.
//
// [GoogleSource] is the production [Source]. It requests the news tab of a search results page and parses
// it with goquery:
//
//	div#ires            results container (required)
//	  div.g             one result, in document order
//	    h3              title
//	    a[href]         first link, a redirect wrapper; see [RecoverURL]
//	    img.th[src]     thumbnail, optional
//	    div.st          preview snippet
//
// A page that does not have this shape yields a [ParseError] for that artist.
package news
