package frontend

import (
	"fmt"
	"html/template"
)

var funcs = template.FuncMap{
	"percent": func(p float64) string { return fmt.Sprintf("%.1f", p*100) },
	"prob":    func(p float64) string { return fmt.Sprintf("%.4f", p) },
}

var pageTemplate = template.Must(template.New("page").Funcs(funcs).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Breast Cancer Prediction</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; background-color: #f5f5f5; color: #333; }
        .layout { display: flex; min-height: 100vh; }
        .sidebar { width: 300px; background: #fff; padding: 20px; box-shadow: 2px 0 4px rgba(0,0,0,0.1); }
        .main { flex: 1; padding: 20px 40px; }
        .note { border-radius: 6px; padding: 12px; margin-bottom: 16px; font-size: 14px; line-height: 1.5; }
        .note-info { background: #e7f1fb; }
        .note-success { background: #e6f4ea; }
        .note-warning { background: #fff8e1; }
        .card { background: #fff; border-radius: 8px; padding: 20px; margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 12px; }
        .field label { display: block; font-size: 13px; color: #666; margin-bottom: 4px; }
        .field input { width: 100%; padding: 6px; box-sizing: border-box; border: 1px solid #ccc; border-radius: 4px; }
        .field-error input { border-color: #dc3545; }
        .field-error .hint { color: #dc3545; font-size: 12px; }
        .error { background: #fdecea; color: #a12622; border-radius: 6px; padding: 12px; margin-bottom: 20px; }
        .bar-row { display: flex; align-items: center; margin: 8px 0; }
        .bar-label { width: 100px; }
        .bar { flex: 1; height: 22px; background: #e9ecef; border-radius: 4px; overflow: hidden; margin-right: 10px; }
        .bar-fill { height: 100%; }
        .bar-benign { background-color: #28a745; }
        .bar-malignant { background-color: #dc3545; }
        button { background: #1f77b4; color: #fff; border: none; border-radius: 4px; padding: 10px 24px; font-size: 15px; cursor: pointer; }
    </style>
</head>
<body>
<div class="layout">
    <aside class="sidebar">
        <h2>Breast Cancer Info &amp; App Usage</h2>
        <h3>What is Breast Cancer?</h3>
        <div class="note note-info">
            Breast cancer is a type of cancer that develops from breast cells.
            It is one of the most common cancers in women worldwide.
            Early detection is crucial for effective treatment and recovery.
        </div>
        <h3>How to Use This App</h3>
        <div class="note note-success">
            <ol>
                <li>Enter the values for the 30 medical features in the input fields.</li>
                <li>Click the <strong>Predict</strong> button.</li>
                <li>The app will display the predicted class (<strong>Benign</strong> or <strong>Malignant</strong>) and the probability of each class in a bar chart.</li>
            </ol>
        </div>
        <h3>Disclaimer</h3>
        <div class="note note-warning">
            This tool is for educational purposes only and <strong>cannot replace medical advice</strong>.
            Always consult a healthcare professional for diagnosis and treatment.
        </div>
    </aside>

    <main class="main">
        <h1>Breast Cancer Prediction</h1>
        <p>Enter features to predict breast cancer:</p>

        {{if .Error}}<div class="error" id="error">{{.Error}}</div>{{end}}

        {{with .Result}}
        <div class="card" id="result">
            <p>Predicted class: <strong id="predicted-class">{{.ClassName}}</strong></p>
            <p>Prediction Probabilities:</p>
            {{range $i, $p := .Probabilities}}
            <div class="bar-row">
                <span class="bar-label">{{index $.ClassNames $i}}</span>
                <div class="bar"><div class="bar-fill {{if eq $i 0}}bar-benign{{else}}bar-malignant{{end}}" style="width: {{percent $p}}%"></div></div>
                <span class="bar-value">{{prob $p}}</span>
            </div>
            {{end}}
        </div>
        {{end}}

        <form method="POST" action="/predict">
            {{range .Groups}}
            <div class="card">
                <h3>{{.Title}}</h3>
                <div class="grid">
                    {{range .Fields}}
                    <div class="field{{if .Error}} field-error{{end}}">
                        <label for="{{.Name}}">{{.Name}}</label>
                        <input type="text" inputmode="decimal" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}">
                        {{if .Error}}<span class="hint">{{.Error}}</span>{{end}}
                    </div>
                    {{end}}
                </div>
            </div>
            {{end}}
            <button type="submit">Predict</button>
        </form>
    </main>
</div>
</body>
</html>
`
