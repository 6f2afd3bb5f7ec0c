/*
Package operation drives a migration run from the import tree to the wiki.

	+-------------+
	|   source    |
	| (walk tree) |
	+------+------+
	       |
	+------+------+
	|  Migrator   |
	| (per file)  |
	+------+------+
	       |
	+------+------+      +-------------+
	|   naming    |----->|    pages    |
	| (titles)    |      | (ancestors) |
	+-------------+      +------+------+
	                            |
	                     +------+------+
	                     |  importer   |
	                     | (strategy)  |
	                     +------+------+
	                            |
	                     +------+------+
	                     |   commit    |
	                     | (.migrated) |
	                     +-------------+

🎯 Purpose:
- Walk the import root and migrate every supported file exactly once
- Decide which failures end the run and which only end a file

🔄 Flow per file:
1. Skip files already carrying the marker suffix
2. Skip unsupported extensions and files rejected by the globs
3. Resolve the target page title
4. Ensure the ancestor pages exist and open the parent page
5. Import with the strategy for the extension
6. Rename the file with the marker suffix

⚡ Failure scope:
- A missing import root or a failed login ends the run
- Anything else fails only the current file, which stays unmarked and is retried by the next run

🔍 Example:

	m, err := operation.New(operation.Options{
		Session: session,
		Root:    "/srv/share/Import",
	})
	summary, err := m.Run(ctx)
*/
package operation
