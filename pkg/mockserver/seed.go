package mockserver

// Seed loads a small demo site: articles and pages, comments, users and
// tags. Article 1 references its author and two tags.
func (s *Server) Seed() {
	for _, t := range []Type{
		{EntityType: "node", Bundle: "article", Label: "Article", Fields: map[string]string{"title": "string", "body": "text_with_summary", "field_tags": "entity_reference", "uid": "entity_reference"}},
		{EntityType: "node", Bundle: "page", Label: "Basic page", Fields: map[string]string{"title": "string", "body": "text_with_summary"}},
		{EntityType: "comment", Label: "Comment", Fields: map[string]string{"subject": "string", "comment_body": "text_long"}},
		{EntityType: "user", Label: "User", Fields: map[string]string{"name": "string", "mail": "email"}},
		{EntityType: "taxonomy_term", Bundle: "tags", Label: "Tags", Fields: map[string]string{"name": "string"}},
	} {
		s.AddType(t)
	}

	s.Put("user", "", "", map[string]any{"name": "admin", "mail": "admin@example.com"})
	s.Put("user", "", "", map[string]any{"name": "editor", "mail": "editor@example.com"})
	s.Put("taxonomy_term", "tags", "", map[string]any{"name": "go"})
	s.Put("taxonomy_term", "tags", "", map[string]any{"name": "drupal"})

	article := s.Put("node", "article", "", map[string]any{"title": "Hello HAL", "body": "Embedded resources in practice."})
	s.Put("node", "page", "", map[string]any{"title": "About", "body": "A page."})
	s.Put("comment", "", "", map[string]any{"subject": "Nice", "comment_body": "Thanks for writing this."})

	s.Link("node", article, Link{Field: "uid", EntityType: "user", ID: "1"})
	s.Link("node", article, Link{Field: "field_tags", EntityType: "taxonomy_term", ID: "1"})
	s.Link("node", article, Link{Field: "field_tags", EntityType: "taxonomy_term", ID: "2"})
}
