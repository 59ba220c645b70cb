package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/io"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Document-level keys accepted by "style set" next to the style fields.
const (
	keyGroupBy = "group_by"
	keyFormat  = "format"
)

// stringFields are the style fields whose values are always strings.
var stringFields = map[string]bool{
	timeline.FieldBarColor:        true,
	timeline.FieldBackgroundColor: true,
	timeline.FieldGridColor:       true,
	timeline.FieldLabelColor:      true,
	timeline.FieldFontFamily:      true,
}

// styleCommand creates the style command with its subcommands.
func (c *CLI) styleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Show and edit the chart style of a document",
	}

	cmd.AddCommand(c.styleShowCommand())
	cmd.AddCommand(c.styleSetCommand())
	cmd.AddCommand(c.styleResetCommand())

	return cmd
}

func (c *CLI) styleShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show [file]",
		Short:             "Print the effective style, defaults included",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := io.Load(args[0])
			if err != nil {
				return err
			}
			values, err := effectiveStyle(doc)
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render("Style"))
			for _, f := range timeline.Fields {
				printKeyValue(f, values[f])
			}
			groupBy, _ := timeline.ParseGroupBy(doc.GroupBy)
			printKeyValue(keyGroupBy, string(groupBy))
			format := doc.Format
			if format == "" {
				format = "story"
			}
			printKeyValue(keyFormat, format)
			return nil
		},
	}
}

// effectiveStyle returns every style field of doc as display strings.
func effectiveStyle(doc *io.Document) (map[string]string, error) {
	style, err := doc.Style.Apply(timeline.DefaultStyle())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "style")
	}
	data, err := json.Marshal(style.Settings())
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(timeline.Fields))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	out[timeline.FieldBackgroundImage] = "none"
	if doc.BackgroundImage != "" {
		out[timeline.FieldBackgroundImage] = doc.BackgroundImage
	}
	return out, nil
}

func (c *CLI) styleSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [file] [key=value...]",
		Short: "Set style fields",
		Long: `Set one or more style fields of a document.

Keys are style field names (see "style show") plus group_by and format.
Set background_image to a PNG or JPEG path, or to nothing to remove it.
The document is only written if the resulting style is valid.`,
		Example: `  storyline style set day.toml bar_color=palette bar_opacity=0.8
  storyline style set day.toml font_family="Courier New" background_image=beach.jpg`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: styleFieldArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setStyle(args[0], args[1:]); err != nil {
				return err
			}
			printSuccess("Updated %d style fields", len(args)-1)
			return nil
		},
	}
}

// setStyle applies key=value pairs to the document at path.
func setStyle(path string, pairs []string) error {
	doc, err := io.Load(path)
	if err != nil {
		return err
	}

	fields := make(map[string]json.RawMessage)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return errs.New(errs.ErrCodeInvalidInput, "expected key=value, got %q", pair)
		}
		switch {
		case key == keyGroupBy:
			doc.GroupBy = value
		case key == keyFormat:
			doc.Format = value
		case key == timeline.FieldBackgroundImage:
			doc.BackgroundImage = value
		case timeline.IsField(key):
			fields[key] = settingValue(key, value)
		default:
			return errs.New(errs.ErrCodeInvalidInput, "unknown style field %q", key)
		}
	}

	if len(fields) > 0 {
		data, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		var update timeline.StyleSettings
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&update); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidStyle, err, "invalid style value")
		}
		merged, err := json.Marshal(update)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(merged, &doc.Style); err != nil {
			return err
		}
	}

	if err := doc.Validate(); err != nil {
		return err
	}
	return io.Save(path, doc)
}

// settingValue encodes value as a JSON string for string fields and as a
// raw number otherwise.
func settingValue(key, value string) json.RawMessage {
	if !stringFields[key] {
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return json.RawMessage(value)
		}
	}
	b, _ := json.Marshal(value)
	return b
}

func (c *CLI) styleResetCommand() *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:               "reset [file]",
		Short:             "Reset style fields to their defaults",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resetStyle(args[0], field); err != nil {
				return err
			}
			if field == "" {
				printSuccess("Reset all style fields")
			} else {
				printSuccess("Reset %s", field)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "reset only this field")
	_ = cmd.RegisterFlagCompletionFunc("field", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return timeline.Fields, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// resetStyle clears one style field, or all of them when field is empty,
// so the defaults apply again.
func resetStyle(path, field string) error {
	if field != "" && !timeline.IsField(field) {
		return errs.New(errs.ErrCodeInvalidInput, "unknown style field %q", field)
	}
	doc, err := io.Load(path)
	if err != nil {
		return err
	}

	switch field {
	case "":
		doc.Style = timeline.StyleSettings{}
		doc.BackgroundImage = ""
	case timeline.FieldBackgroundImage:
		doc.BackgroundImage = ""
	default:
		data, err := json.Marshal(doc.Style)
		if err != nil {
			return err
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		delete(raw, field)
		if data, err = json.Marshal(raw); err != nil {
			return err
		}
		var reset timeline.StyleSettings
		if err := json.Unmarshal(data, &reset); err != nil {
			return err
		}
		doc.Style = reset
	}

	return io.Save(path, doc)
}
