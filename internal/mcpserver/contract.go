package mcpserver

// DecisionFormatContract describes the two decision record layouts the
// importer understands, so LLM consumers can write records that import
// cleanly.
const DecisionFormatContract = `# Decision Record Format

Decisions are Markdown files in one directory. The directory uses exactly
one of two layouts, chosen by the ` + "`decisions.dialect`" + ` setting.

## adrtools

Filename: ` + "`NNNN-title-in-kebab-case.md`" + `. The first four characters are the
decision number; leading zeros are dropped, so ` + "`0008-use-go.md`" + ` has ID ` + "`8`" + `.

` + "```" + `markdown
# 8. Use Go

Date: 2024-05-01

## Status

Accepted

Supersedes [3. Use Java](0003-use-java.md)

## Context
...
` + "```" + `

Rules:

1. The title line is ` + "`# <number>. <title>`" + `. Without it the title is "Untitled".
2. ` + "`Date: YYYY-MM-DD`" + ` must be alone on its line. Without it the import time is used.
3. The status is the first word after ` + "`## Status`" + ` and a blank line. Without it the
   status is "Proposed". "Superceded" is read as "Superseded".
4. Typed links must start the line: ` + "`Superseded by`" + `, ` + "`Supersedes`" + `,
   ` + "`Amended by`" + `, ` + "`requires`" + ` followed by ` + "`[label](NNNN-file.md)`" + `.
5. Any other Markdown link to a decision file becomes a "References" link,
   unless the decision already links to that target.

## madr

Filename: ` + "`YYYYMMDD-title.md`" + `. The whole filename is the decision ID.

` + "```" + `markdown
# Use Go

- Status: accepted
- Date: 2024-05-01

## Context
...

## Links

- Refines [Use Java](20230101-use-java.md)
` + "```" + `

Rules:

1. The first line is ` + "`# <title>`" + `.
2. ` + "`- Status: `" + ` and ` + "`- Date: `" + ` lines are optional; the first letter of the
   status is capitalised.
3. Every line after ` + "`## Links`" + ` of the form ` + "`<type> [label](file.md)`" + ` adds a link
   whose type is the text before the bracket.

## Both layouts

- Links to files that are not in the directory are ignored.
- After import, every mention of a decision filename in any decision is
  rewritten to its anchor, e.g. ` + "`(0003-use-java.md)`" + ` becomes ` + "`(#3)`" + `.
- Files are UTF-8; carriage returns are removed.
`
