// Package scaffold provides helpers for creating devsetup.yaml, an env
// template stub, and the .gitignore entry for the env file.
package scaffold

// ConfigFileName is the file written by devsetup init.
const ConfigFileName = "devsetup.yaml"

// ConfigTemplate is the devsetup.yaml written by init. It spells out the
// built-in defaults so they can be edited in place.
const ConfigTemplate = `# devsetup project layout
version: 1
project: HireScope

preflight:
  # must exist relative to the directory devsetup is run from
  require_dirs: [backend, src]

# run in order; a failure stops the remaining steps
install:
  - name: backend
    dir: backend
    command: [npm, install]
  - name: frontend
    dir: .
    command: [npm, install]

env:
  target: backend/.env
  template: backend/.env.example

next_steps:
  - "1. Configure backend/.env with your settings:"
  - "   - MongoDB URI"
  - "   - JWT secrets"
  - "   - OpenAI API key"
  - "2. Start MongoDB"
  - "3. Run the development servers:"
  - ""
  - "   Backend:  cd backend && npm run dev"
  - "   Frontend: npm run dev"
  - ""

guide: SETUP_GUIDE.md
`
