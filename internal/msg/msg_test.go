package msg

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLogInstructions(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	LogInstructions(&buf, "root", "203.0.113.10", "./auto_deploy.sh", []byte("#!/bin/bash\necho hi\n"))

	want := `
Deploy script created: ./auto_deploy.sh

To deploy on your server, run:
  scp ./auto_deploy.sh root@203.0.113.10:
  ssh root@203.0.113.10 'bash auto_deploy.sh'

Or connect with ssh root@203.0.113.10
then paste and run this script:

#!/bin/bash
echo hi

`
	assert.Equal(t, want, buf.String())
}

func TestLogInstructions_Sudo(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	LogInstructions(&buf, "deploy", "203.0.113.10", "./auto_deploy.sh", []byte("#!/bin/bash\necho hi\n"))

	want := `
Deploy script created: ./auto_deploy.sh

To deploy on your server, run:
  scp ./auto_deploy.sh deploy@203.0.113.10:
  ssh -t deploy@203.0.113.10 'sudo bash auto_deploy.sh'

Or connect with ssh deploy@203.0.113.10
then run 'sudo bash', paste this script and press Ctrl-D:

#!/bin/bash
echo hi

`
	assert.Equal(t, want, buf.String())
}
