package mcpserver

// ReferenceFormatContract describes the image reference forms the open
// pipeline accepts, for LLM consumers driving the tools.
const ReferenceFormatContract = `# Perthro Image Reference Contract

An image reference passed to ` + "`" + `open_image` + "`" + ` or ` + "`" + `resolve_image` + "`" + ` is resolved
against the configured vault. The following forms are accepted.

## Accepted forms

| Form | Example | Resolution |
|------|---------|------------|
| Vault-relative path | ` + "`" + `images/photo.png` + "`" + ` | joined to the vault root |
| Absolute path | ` + "`" + `/home/me/vault/photo.png` + "`" + ` | used as-is |
| Windows absolute path | ` + "`" + `C:/vault/photo.png` + "`" + `, UNC ` + "`" + `//server/share/a.png` + "`" + ` | used as-is (Windows hosts) |
| file:// URL | ` + "`" + `file:///home/me/vault/photo.png` + "`" + ` | scheme stripped, percent-decoded |
| app:// URL | ` + "`" + `app://local/images/photo.png` + "`" + ` | authority dropped, rest vault-relative |
| Wikilink | ` + "`" + `[[photo]]` + "`" + `, ` + "`" + `[[photo.png\|alt text]]` + "`" + ` | looked up in the vault file index |

Backslashes are normalized to forward slashes, query strings and fragments
are stripped, and percent-encoded sequences are decoded when safe.

## Rejected forms

1. **Embedded images** (` + "`" + `data:` + "`" + ` and ` + "`" + `blob:` + "`" + ` URIs) have no file on disk.
   Use ` + "`" + `export_embedded` + "`" + ` to materialize them first.
2. **Network images** (` + "`" + `http://` + "`" + ` / ` + "`" + `https://` + "`" + `) are never fetched or opened.
3. **Unsafe paths**: references carrying shell metacharacters
   (` + "`" + `;` + "`" + ` ` + "`" + `&` + "`" + ` ` + "`" + `|` + "`" + ` backticks ` + "`" + `$` + "`" + `), variable expansions like ` + "`" + `${HOME}` + "`" + `,
   leading redirections, control characters, or more than 10 ` + "`" + `..` + "`" + ` segments.
4. **References longer than 1000 characters** or containing NUL bytes.

## Outcome

Every call returns an outcome object:

` + "```" + `json
{
  "status": "ok" | "error",
  "kind": "opened | not_found | embedded_image | network_image | dangerous_path | ...",
  "path": "/absolute/path/when/resolved",
  "message": "human-readable explanation",
  "notify": true
}
` + "```" + `

The file must exist and be a regular file; directories and special files
are reported as ` + "`" + `not_found` + "`" + `.
`
