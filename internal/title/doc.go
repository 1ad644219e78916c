// Package title normalizes game titles and scores their similarity.
//
// Editorial sources decorate the same game differently ("Hades II",
// "Hades 2", "Hades® II"), so every title passes through Normalize before
// it is used as a matching or deduplication key. Similarity adds a numeral
// gate on top of a plain edit ratio so sequels never fuzzy-match each
// other no matter how close their names are.
package title
