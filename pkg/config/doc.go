/*
Package config manages configuration parsing and validation for pagemigrate.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|   YAML    | |   HCL   | |   JSON    |
	| Parser    | | Parser  | | Parser    |
	+-----------+ +---------+ +-----------+
	                   |
	            +------+------+
	            |  .env/env   |
	            | credentials |
	            +-------------+

🎯 Purpose:
- Loads the wiki address, space, import root and credentials of a run
- Carries the tunables of the UI automation (retry bounds, sentinel texts, browser)

🔄 Flow:
1. Reads configuration from file
2. Parses format-specific syntax
3. Overlays credentials from a .env file and the environment
4. Validates values and fills in defaults

🔑 Credentials:
Username and password may live in the file, but usually come from
PAGEMIGRATE_USERNAME and PAGEMIGRATE_PASSWORD, either exported or written to a
.env file next to the config file. HCL files can also read any variable as env.NAME.

🔍 Example:

	base_address = "https://wiki.example.com"
	space        = "DOCS"
	source_root  = "/srv/share/Import"

	retry {
	  max_attempts = 10
	  delay        = "1s"
	}
*/
package config
