package yaml

// Sample is an annotated configuration file printed by --sample-config.
const Sample = `# logcolor configuration
# Place at ~/.config/logcolor/config.yaml or pass --config.

# Built-in theme the styles below are applied on top of.
theme: default

# parser: grammar       # or flat
# relative_time: false
# dedup_timestamps: false
# dedup_max_gap: 1s
# join_multiline: false
# color: auto           # always, never
# strict: false

# Extra token rules, tried before the built-in rules. Earlier entries
# win. Reference another rule with {name}.
tokens:
  myKeyword: /\b(?:TODO|FIXME|NOTE|HACK)\b/
  # Named groups are styled as <token>_<group>.
  gitCommit: /\b(?<hash>[a-f0-9]{7,40}) (?<message>[A-Z][^\n]*)/
  # A list matches any of its patterns.
  customError:
    - /\bERR_[A-Z_]+\b/
    - /\bE[0-9]{4}\b/

# Style overrides: a shorthand such as "red|bold" or "#ff9900", a record,
# or null to drop a style inherited from the theme.
styles:
  myKeyword: magenta|bold
  gitCommit_hash: yellow
  gitCommit_message: white
  customError: red|bold|underline
  number: "#ff9900"
  timestamp:
    color: cyan
    bold: true
  ellipsis: null
`
