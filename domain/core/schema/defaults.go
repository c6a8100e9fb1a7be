package schema

// DefaultSchemas returns the built-in node types
func DefaultSchemas() []*NodeSchema {
	return []*NodeSchema{
		NewNodeSchema("Person",
			FieldDef{Name: "name", Kind: KindString, Required: true, Validate: "min=1,max=200"},
			FieldDef{Name: "age", Kind: KindInt, Validate: "gte=0,lte=150"},
			FieldDef{Name: "email", Kind: KindString, Validate: "omitempty,email"},
			FieldDef{Name: "aliases", Kind: KindStringList, Validate: "max=20,dive,min=1"},
		),
		NewNodeSchema("Topic",
			FieldDef{Name: "title", Kind: KindString, Required: true, Validate: "min=1,max=200"},
			FieldDef{Name: "description", Kind: KindString, Validate: "max=5000"},
			FieldDef{Name: "tags", Kind: KindStringList, Validate: "max=20,dive,min=1"},
		),
		NewNodeSchema("Document",
			FieldDef{Name: "title", Kind: KindString, Required: true, Validate: "min=1,max=200"},
			FieldDef{Name: "body", Kind: KindString},
			FieldDef{Name: "url", Kind: KindString, Validate: "omitempty,url"},
			FieldDef{Name: "published_at", Kind: KindTime},
			FieldDef{Name: "score", Kind: KindFloat, Validate: "gte=0,lte=1"},
		),
		NewNodeSchema("Interaction",
			FieldDef{Name: "summary", Kind: KindString, Required: true, Validate: "min=1"},
			FieldDef{Name: "channel", Kind: KindString, Validate: "omitempty,oneof=email call meeting chat"},
			FieldDef{Name: "occurred_at", Kind: KindTime},
			FieldDef{Name: "participants", Kind: KindStringList},
			FieldDef{Name: "follow_up", Kind: KindBool},
		),
	}
}
