/*
Package gitbin stores large binary files outside of git.

Files are split in fixed size chunks, each stored under the SHA-256 of its
content, first in a cache local to the repository, then on a remote shared by
all clones (S3, GCS or a plain directory). Git only tracks a small YAML
manifest listing the chunks of each file.

The git-bin command implements the clean and smudge filters of git, and the
push, status and clear maintenance commands.
*/
package gitbin
