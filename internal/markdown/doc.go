// Package markdown implements the note ingestion workflows: discovering
// Markdown files on disk, parsing frontmatter and bodies, extracting
// annotation entries from the document structure, and folding the extracted
// entries into the catalog.
package markdown
