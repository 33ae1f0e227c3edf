// Package tagtree turns template text into a tree of tag nodes.
//
// Parsing runs in three steps. Normalize strips the indentation in front
// of block markers when the dialect asks for it. A Lexer splits the text
// on the dialect's markers using one compiled alternation, longest marker
// first. The builder then walks the tokens with an explicit stack of open
// nodes, pushing on head markers and popping on the matching tail.
//
// Nodes live in an arena (Tree.Nodes) and refer to their children by
// NodeID. The type of a tag node is peeled off its first text child at
// the moment that child is attached, see ExtractType and ExtractFormat.
package tagtree
