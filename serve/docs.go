package serve

import "fmt"

func docsHTML(openapiPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>API Docs</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      SwaggerUIBundle({ url: %q, dom_id: '#swagger-ui' });
    };
  </script>
</body>
</html>`, openapiPath)
}
